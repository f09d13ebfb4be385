package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BannerTransform stores the pan/zoom/rotate adjustments applied to a
// provider's banner image, persisted as JSONB.
type BannerTransform struct {
	PanX     float64 `json:"pan_x"`
	PanY     float64 `json:"pan_y"`
	Zoom     float64 `json:"zoom"`
	Rotation float64 `json:"rotation"`
}

// Normalized returns a copy with zoom clamped to a sane range and rotation
// wrapped into [0, 360).
func (b BannerTransform) Normalized() BannerTransform {
	out := b
	if out.Zoom <= 0 {
		out.Zoom = 1
	}
	if out.Zoom > 10 {
		out.Zoom = 10
	}
	for out.Rotation < 0 {
		out.Rotation += 360
	}
	for out.Rotation >= 360 {
		out.Rotation -= 360
	}
	return out
}

// Value marshals the transform into JSON for Postgres.
func (b BannerTransform) Value() (driver.Value, error) {
	buf, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the transform.
func (b *BannerTransform) Scan(value interface{}) error {
	if value == nil {
		*b = BannerTransform{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("banner transform: unsupported scan type %T", value)
	}

	var result BannerTransform
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*b = result
	return nil
}
