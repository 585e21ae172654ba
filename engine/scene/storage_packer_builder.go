package scene

// StoragePackerBuilderOption is a functional option for configuring a StoragePacker.
type StoragePackerBuilderOption func(p *storagePacker)

// WithPackWorkers sets the number of pool workers used for parallel packing.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - StoragePackerBuilderOption: option function to apply
func WithPackWorkers(n int) StoragePackerBuilderOption {
	return func(p *storagePacker) {
		p.workers = max(n, 1)
	}
}

// WithParallelThreshold sets the record count at which packing moves onto the pool. Smaller
// lists are encoded inline since dispatch overhead would outweigh the work.
//
// Parameters:
//   - records: the threshold in records (minimum 1)
//
// Returns:
//   - StoragePackerBuilderOption: option function to apply
func WithParallelThreshold(records int) StoragePackerBuilderOption {
	return func(p *storagePacker) {
		p.threshold = max(records, 1)
	}
}

// WithChunkSize sets how many records each pool task encodes.
//
// Parameters:
//   - records: records per task (minimum 1)
//
// Returns:
//   - StoragePackerBuilderOption: option function to apply
func WithChunkSize(records int) StoragePackerBuilderOption {
	return func(p *storagePacker) {
		p.chunk = max(records, 1)
	}
}
