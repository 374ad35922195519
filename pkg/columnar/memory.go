package columnar

import "github.com/shirou/gopsutil/v3/mem"

const minMemoryLimitMB = 64

// memoryLimit returns a quarter of the currently available memory, or
// zero when it cannot be determined.
func memoryLimit() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Available / 4
}
