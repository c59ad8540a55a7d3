package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制，去掉连字符方便当主键
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
