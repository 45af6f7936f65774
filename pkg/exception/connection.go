package exception

import "errors"

var (
	ErrUnsupportedDriver = errors.New("conn: unsupported database driver")
	ErrEmptyDSN          = errors.New("conn: empty connection string")
	ErrEmptyBrokers      = errors.New("kafka: empty broker list")
)
