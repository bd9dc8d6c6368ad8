package vision

import (
	"os"
	"path/filepath"
	"strings"

	"cellseg/internal/domain/entity"
)

// BackendProbe проверяет доступность одного устройства.
type BackendProbe struct {
	Backend   entity.Backend
	Available func() bool
}

// DefaultProbes возвращает проверки в порядке предпочтения: CUDA, OpenCL, CPU.
func DefaultProbes() []BackendProbe {
	return []BackendProbe{
		{Backend: entity.BackendCUDA, Available: cudaAvailable},
		{Backend: entity.BackendOpenCL, Available: openCLAvailable},
		{Backend: entity.BackendCPU, Available: func() bool { return true }},
	}
}

// SelectBackend возвращает явно заданный бэкенд либо первый доступный.
func SelectBackend(preferred entity.Backend, probes []BackendProbe) entity.Backend {
	if preferred != entity.BackendAuto && preferred != "" {
		return preferred
	}
	for _, p := range probes {
		if p.Available() {
			return p.Backend
		}
	}
	return entity.BackendCPU
}

func cudaAvailable() bool {
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		v = strings.TrimSpace(v)
		if v == "" || v == "-1" {
			return false
		}
	}
	return fileExists("/proc/driver/nvidia/version") || fileExists("/dev/nvidiactl")
}

func openCLAvailable() bool {
	for _, pattern := range []string{"/etc/OpenCL/vendors/*.icd", "/dev/dri/renderD*"} {
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
