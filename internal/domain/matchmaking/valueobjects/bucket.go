package valueobjects

import (
	"fmt"
	"strings"
)

const (
	MinPartySize     = 2
	MaxPartySize     = 16
	DefaultPartySize = 4

	maxBucketFieldLength = 64
)

// Bucket is the (mode, region, partySize) triple that partitions the queue.
// Only tickets in the same bucket are ever matched together.
type Bucket struct {
	mode      string
	region    string
	partySize int
}

// NewBucket trims mode and region and validates all three fields.
func NewBucket(mode, region string, partySize int) (Bucket, error) {
	mode = strings.TrimSpace(mode)
	region = strings.TrimSpace(region)

	if mode == "" {
		return Bucket{}, fmt.Errorf("mode is required")
	}
	if region == "" {
		return Bucket{}, fmt.Errorf("region is required")
	}
	if len(mode) > maxBucketFieldLength || len(region) > maxBucketFieldLength {
		return Bucket{}, fmt.Errorf("mode and region must be at most %d characters", maxBucketFieldLength)
	}
	if strings.Contains(mode, "|") || strings.Contains(region, "|") {
		return Bucket{}, fmt.Errorf("mode and region must not contain '|'")
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		return Bucket{}, fmt.Errorf("players per match must be between %d and %d", MinPartySize, MaxPartySize)
	}

	return Bucket{mode: mode, region: region, partySize: partySize}, nil
}

func (b Bucket) Mode() string {
	return b.mode
}

func (b Bucket) Region() string {
	return b.region
}

func (b Bucket) PartySize() int {
	return b.partySize
}

func (b Bucket) IsZero() bool {
	return b == Bucket{}
}

func (b Bucket) String() string {
	return fmt.Sprintf("%s/%s/%d", b.mode, b.region, b.partySize)
}

// ActiveKey is the uniqueness key held by a queued ticket. Party size is not part of it:
// a player may hold one queued ticket per (mode, region) regardless of party size.
func ActiveKey(playerID, mode, region string) string {
	return playerID + "|" + mode + "|" + region
}
