package utils

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

func TimestampS() int64 {
	return time.Now().Unix()
}

func TimestampMS() int64 {
	return time.Now().UnixNano() / 1e6
}

// NewJobId time ordered job id, e.g. 1697600000000-1b4e28ba
func NewJobId() string {
	return fmt.Sprintf("%d-%s", TimestampMS(), uuid.NewString()[:8])
}

// PortCheck port usable
func PortCheck(port string, timeout int) bool {
	if port == "" {
		return false
	}
	timeoutChan := time.After(time.Duration(timeout) * time.Millisecond)
	for {
		select {
		case <-timeoutChan:
			return false
		default:
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%s", port),
				time.Duration(10)*time.Millisecond)
			if err == nil && conn != nil {
				conn.Close()
				return true
			}
		}
	}
}
