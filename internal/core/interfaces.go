package core

// PruneOptions contains the policy knobs for computing a deletion set
type PruneOptions struct {
	Protected  NameSet // Libraries never removed automatically
	Allowed    NameSet // Protected libraries the caller explicitly authorizes for removal
	SinglePass bool    // Apply the kept-requirements protection once instead of to a fixed point
}

// DefaultProtected is the bootstrap library guarded from automatic removal
const DefaultProtected = "pip"
