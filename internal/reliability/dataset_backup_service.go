// Package reliability mirrors the holiday dataset to Cloudflare R2.
package reliability

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

const (
	snapshotPrefix    = "holidays-"
	snapshotSuffix    = ".csv"
	snapshotTimestamp = "2006-01-02-150405"
	latestDatasetName = "holidays-latest.csv"
	latestMetaName    = "holidays-latest.json"

	// minSnapshotsToKeep survive rotation regardless of the keep setting
	minSnapshotsToKeep = 3
)

// ObjectStore is the subset of R2Client used for publishing.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// DatasetMetadata describes a published dataset
type DatasetMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Snapshot  string    `json:"snapshot"`
	Holidays  int       `json:"holidays"`
	First     string    `json:"first"`
	Last      string    `json:"last"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// SnapshotInfo represents a dataset snapshot stored in R2
type SnapshotInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// DatasetBackupService publishes dataset snapshots to an object store
type DatasetBackupService struct {
	store  ObjectStore
	prefix string
	keep   int
	now    func() time.Time
	log    zerolog.Logger
}

// NewDatasetBackupService creates a new dataset backup service. Keys are
// placed under prefix; keep is how many timestamped snapshots rotation
// retains (0 keeps everything).
func NewDatasetBackupService(store ObjectStore, prefix string, keep int, log zerolog.Logger) *DatasetBackupService {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &DatasetBackupService{
		store:  store,
		prefix: prefix,
		keep:   keep,
		now:    time.Now,
		log:    log.With().Str("service", "dataset_backup").Logger(),
	}
}

// Publish uploads the dataset at path as a timestamped snapshot, as the
// latest copy, and with a metadata document, then rotates old snapshots.
func (s *DatasetBackupService) Publish(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	holidays, err := calendar.ReadDataset(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("refusing to publish invalid dataset: %w", err)
	}
	cal := calendar.New(holidays, s.log)
	first, _ := cal.First()
	last, _ := cal.Last()

	now := s.now().UTC()
	snapshot := s.prefix + snapshotPrefix + now.Format(snapshotTimestamp) + snapshotSuffix
	meta := DatasetMetadata{
		Timestamp: now,
		Snapshot:  snapshot,
		Holidays:  cal.Len(),
		First:     calendar.FormatDate(first),
		Last:      calendar.FormatDate(last),
		SizeBytes: int64(len(data)),
		Checksum:  checksum(data),
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	uploads := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{snapshot, data, "text/csv"},
		{s.prefix + latestDatasetName, data, "text/csv"},
		{s.prefix + latestMetaName, metaJSON, "application/json"},
	}
	for _, u := range uploads {
		if err := s.store.Upload(ctx, u.key, bytes.NewReader(u.body), int64(len(u.body)), u.contentType); err != nil {
			return err
		}
	}

	s.log.Info().
		Str("snapshot", snapshot).
		Int("holidays", meta.Holidays).
		Str("checksum", meta.Checksum).
		Msg("Dataset published")

	if err := s.RotateOldSnapshots(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Snapshot rotation failed")
	}
	return nil
}

// ListSnapshots lists timestamped snapshots, newest first
func (s *DatasetBackupService) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	objects, err := s.store.List(ctx, s.prefix+snapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	now := s.now()
	snapshots := make([]SnapshotInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}
		key := *obj.Key
		name := strings.TrimPrefix(key, s.prefix)
		if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}

		ts, err := time.Parse(snapshotTimestamp, strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix))
		if err != nil {
			// holidays-latest.csv and foreign keys land here
			continue
		}

		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}
		snapshots = append(snapshots, SnapshotInfo{
			Key:       key,
			Timestamp: ts,
			SizeBytes: size,
			AgeHours:  int64(now.Sub(ts).Hours()),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// RotateOldSnapshots deletes snapshots beyond the newest keep entries
func (s *DatasetBackupService) RotateOldSnapshots(ctx context.Context) error {
	if s.keep <= 0 {
		return nil
	}
	keep := max(s.keep, minSnapshotsToKeep)

	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) <= keep {
		return nil
	}

	deleted := 0
	for _, snap := range snapshots[keep:] {
		if err := s.store.Delete(ctx, snap.Key); err != nil {
			s.log.Error().Err(err).Str("key", snap.Key).Msg("Failed to delete old snapshot")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(snapshots)-deleted).
		Msg("Snapshot rotation completed")
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
