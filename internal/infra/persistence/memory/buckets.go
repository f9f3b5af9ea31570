package memory

// Bucket names one persisted section of a Snapshot and points at its field.
type Bucket struct {
	Name   string
	Target any
}

// Buckets lists the snapshot sections in a fixed order. Targets point into s,
// so they can be used both to encode and to decode.
func (s *Snapshot) Buckets() []Bucket {
	return []Bucket{
		{Name: "specialites", Target: &s.Specialites},
		{Name: "classrooms", Target: &s.Classrooms},
		{Name: "juries", Target: &s.Juries},
		{Name: "invitees", Target: &s.Invitees},
		{Name: "students", Target: &s.Students},
		{Name: "defences", Target: &s.Defences},
		{Name: "jury_assignments", Target: &s.JuryAssignments},
		{Name: "invitee_assignments", Target: &s.InviteeAssignments},
	}
}
