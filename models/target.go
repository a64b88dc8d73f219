package models

import "fmt"

// TargetKind tells whether a record belongs to one student or to a group.
type TargetKind int

const (
	TargetIndividual TargetKind = iota + 1
	TargetGroup
)

func (k TargetKind) String() string {
	switch k {
	case TargetIndividual:
		return "individual"
	case TargetGroup:
		return "group"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// Field returns the stored field that carries the target id.
func (k TargetKind) Field() string {
	switch k {
	case TargetIndividual:
		return FieldStudentID
	case TargetGroup:
		return FieldGroupID
	default:
		panic(fmt.Sprintf("models: unknown target kind %d", int(k)))
	}
}

// Target is either Individual(studentID) or Group(groupID).
type Target struct {
	Kind TargetKind
	ID   string
}

func Individual(studentID string) Target {
	return Target{Kind: TargetIndividual, ID: studentID}
}

func Group(groupID string) Target {
	return Target{Kind: TargetGroup, ID: groupID}
}

// ResolveTarget derives the target of a record from its id fields. The student
// id wins when both are set. ok is false when neither is set.
func ResolveTarget(studentID, groupID string) (t Target, ok bool) {
	switch {
	case studentID != "":
		return Individual(studentID), true
	case groupID != "":
		return Group(groupID), true
	default:
		return Target{}, false
	}
}
