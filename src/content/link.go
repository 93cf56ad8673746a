package content

import (
	"fmt"
	"slices"
)

// Link is an ordered relationship from an owner entity to a target entity.
// TargetID is nil once the target was deleted under a set-null policy.
type Link struct {
	ID       int64    `json:"id"`
	Kind     LinkKind `json:"kind"`
	OwnerID  string   `json:"owner_id"`
	TargetID *string  `json:"target_id"`
	Position int      `json:"position"`
}

// Dangling reports whether the link lost its target.
func (l Link) Dangling() bool { return l.TargetID == nil }

// Reference returns the warning describing a dangling link.
func (l Link) Reference() DanglingReference {
	return DanglingReference{LinkID: l.ID, OwnerID: l.OwnerID, Kind: l.Kind}
}

// Linked is a link together with its resolved target. Target is nil for
// dangling links.
type Linked struct {
	Link
	Target *Entity `json:"target"`
}

// LinkDraft is a link submitted as part of an owner's create form.
type LinkDraft struct {
	Kind     LinkKind `json:"kind" yaml:"kind" validate:"required"`
	TargetID string   `json:"target_id" yaml:"target" validate:"required"`
}

// CheckPermutation verifies that order contains each existing id exactly
// once. It guards link and item reorders alike.
func CheckPermutation(existing []int64, order []int64) error {
	if len(order) != len(existing) {
		return Invalid("order", "expected %d ids, got %d", len(existing), len(order))
	}
	seen := make(map[int64]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return Invalid("order", "%d listed more than once", id)
		}
		if !slices.Contains(existing, id) {
			return Invalid("order", "%d is not part of this collection", id)
		}
		seen[id] = true
	}
	return nil
}

// CheckDrafts validates the initial links of a new owner against every link
// kind the owner's kind declares.
func (r *Registry) CheckDrafts(owner Kind, drafts []LinkDraft) error {
	counts := make(map[LinkKind]int)
	for _, d := range drafts {
		spec, err := r.Spec(d.Kind)
		if err != nil {
			return err
		}
		if !spec.AllowsOwner(owner) {
			return Invalid(string(d.Kind), "%s entities cannot own %s links", owner, d.Kind)
		}
		counts[d.Kind]++
	}
	for _, spec := range r.OwnedBy(owner) {
		if err := spec.CheckCount(counts[spec.Kind]); err != nil {
			return err
		}
	}
	return nil
}

// CheckTarget validates that target may be linked from owner under spec.
func (s LinkSpec) CheckTarget(owner, target *Entity) error {
	if !s.AllowsOwner(owner.Kind) {
		return Invalid(string(s.Kind), "%s entities cannot own %s links", owner.Kind, s.Kind)
	}
	if !s.AllowsTarget(target.Kind) {
		return Invalid(string(s.Kind), "cannot link to a %s", target.Kind)
	}
	if owner.ID == target.ID {
		return Invalid(string(s.Kind), "an entity cannot link to itself")
	}
	return nil
}

func (l Link) String() string {
	target := "<nil>"
	if l.TargetID != nil {
		target = *l.TargetID
	}
	return fmt.Sprintf("%s[%d] %s -> %s", l.Kind, l.Position, l.OwnerID, target)
}
