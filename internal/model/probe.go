package model

import "context"

// ConnectivityProbe decides whether the remote side is reachable.
type ConnectivityProbe interface {
	IsOnline(ctx context.Context) bool
}
