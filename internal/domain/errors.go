package domain

import "errors"

// 业务校验类错误，全部可恢复：拒绝操作并保持原状态
var (
	ErrDuplicateIdentity     = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrReauthRequired        = errors.New("password confirmation required")
	ErrNotFound              = errors.New("not found")
	ErrPolicyNotAcknowledged = errors.New("content policy not acknowledged")
)
