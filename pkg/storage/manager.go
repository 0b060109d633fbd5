package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

var (
	managerMu sync.RWMutex
	disks     = map[string]Disk{}
)

// Connect boots the local disk and, when BUCKET_NAME is set, the s3 disk.
func Connect(ctx context.Context) {
	RegisterDisk("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	bucket := config.ImportBucket()
	if bucket == "" {
		return
	}
	d, err := NewS3Disk(ctx, bucket)
	if err != nil {
		logger.Warn("storage: s3 disk disabled", "error", err)
		return
	}
	RegisterDisk("s3", d)
}

// Use returns the named disk.
//
//	storage.Use("s3").Move(ctx, "uploaded/a.csv", "parsed/a.csv")
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs a Disk in under name. Tests use it to swap in fakes.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}
