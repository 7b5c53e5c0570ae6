package puct

// handle is an arena index standing in for a node pointer. Nodes are
// stored in one contiguous slice inside Tree and referenced by handle so
// that detaching a subtree is a freelist push, not a pointer-graph edit
// that the GC has to trace.
type handle int32

const nilHandle handle = -1

func (h handle) isValid() bool { return h >= 0 }
