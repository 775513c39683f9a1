package reportstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

// ValkeyStore caches latest reports in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "reports"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetLatest(ctx context.Context, userID int64, kind analytics.Kind) (report.Report, bool, error) {
	cmd := s.client.B().Get().Key(s.latestKey(userID, kind)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return report.Report{}, false, nil
		}
		return report.Report{}, false, err
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(payload), &rep); err != nil {
		return report.Report{}, false, err
	}
	return rep, true, nil
}

// SetLatest writes rep under its kind and under the "any kind" key.
func (s *ValkeyStore) SetLatest(ctx context.Context, rep report.Report, ttl time.Duration) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	if err := s.setString(ctx, s.latestKey(rep.UserID, rep.Kind), string(payload), ttl); err != nil {
		return err
	}
	return s.setString(ctx, s.latestKey(rep.UserID, ""), string(payload), ttl)
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) latestKey(userID int64, kind analytics.Kind) string {
	if kind == "" {
		kind = "any"
	}
	return fmt.Sprintf("%s:latest:%d:%s", s.prefix, userID, kind)
}

var _ report.Cache = (*ValkeyStore)(nil)
