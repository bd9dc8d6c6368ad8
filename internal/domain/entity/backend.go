package entity

import (
	"fmt"
	"strings"
)

// Backend — вычислительное устройство для модели.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendCUDA   Backend = "cuda"
	BackendOpenCL Backend = "opencl"
	BackendCPU    Backend = "cpu"
)

// ParseBackend разбирает имя бэкенда, пустая строка означает auto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendCUDA:
		return BackendCUDA, nil
	case BackendOpenCL:
		return BackendOpenCL, nil
	case BackendCPU:
		return BackendCPU, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, cuda, opencl or cpu)", s)
	}
}

// Description возвращает строку для лога о выбранном устройстве.
func (b Backend) Description() string {
	switch b {
	case BackendCUDA:
		return "Using CUDA GPU acceleration."
	case BackendOpenCL:
		return "Using OpenCL GPU acceleration."
	default:
		return "Using CPU (no GPU backend available)."
	}
}
