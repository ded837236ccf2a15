package id

import (
	"github.com/google/uuid"
)

// NewRequestID 生成请求 ID
func NewRequestID() string {
	return uuid.NewString()
}

// IsValid 验证请求 ID 是否为合法 UUID
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
