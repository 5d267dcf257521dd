package jni

// ClassNamer is implemented by Go types that stand for a host class.
// The name uses the host's internal form, e.g. "java/lang/String".
type ClassNamer interface {
	ClassName() string
}

// Describer is implemented by Go types that carry their own host type
// descriptor, e.g. "[I" for an int array handle.
type Describer interface {
	Descriptor() string
}
