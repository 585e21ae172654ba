package bind_group_provider

// BufferWrite is a queued write of Data into the buffer at Binding of Provider, starting
// Offset bytes in. Build one with BindGroupProvider.Write.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// InBounds reports whether the target binding holds a buffer the write fits in.
func (w BufferWrite) InBounds() bool {
	if w.Provider == nil {
		return false
	}
	r, ok := w.Provider.Binding(w.Binding)
	return ok && w.Offset+uint64(len(w.Data)) <= r.BufferSize
}
