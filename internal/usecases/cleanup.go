package usecases

import (
	"errors"
	"os"
	"time"

	"video-merger/internal/domain/repositories"
	"video-merger/internal/metrics"
	"video-merger/internal/pkg/fileutils"
	"video-merger/internal/pkg/logging"
)

// CleanupService sweeps scratch files left behind by requests that never
// reached their own cleanup (crash, kill -9).
type CleanupService interface {
	CleanupOldTempFiles(maxAge time.Duration) (int, error)
}

type cleanupService struct {
	storage repositories.ScratchStorage
	now     func() time.Time
}

func NewCleanupService(storage repositories.ScratchStorage) CleanupService {
	return &cleanupService{
		storage: storage,
		now:     time.Now,
	}
}

// CleanupOldTempFiles removes every scratch file older than maxAge and
// returns how many were removed. A failed removal does not stop the sweep.
func (s *cleanupService) CleanupOldTempFiles(maxAge time.Duration) (int, error) {
	log := logging.WithComponent("cleanup")

	stale, err := fileutils.StaleFiles(s.storage.BaseDir(), maxAge, s.now())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	var errs []error
	for _, path := range stale {
		if err := s.storage.Remove(path); err != nil {
			metrics.CleanupErrors.Inc()
			errs = append(errs, err)
			continue
		}
		removed++
		metrics.SweptFiles.Inc()
		log.Info().Str("path", path).Msg("removed stale scratch file")
	}
	return removed, errors.Join(errs...)
}
