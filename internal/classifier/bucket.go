package classifier

// CompletionBucket groups completion percentages for edge-triggered nudges.
type CompletionBucket int

const (
	BucketLow    CompletionBucket = iota // < 50
	BucketMedium                         // 50-79
	BucketHigh                           // >= 80
)

// BucketFor maps a completion percentage to its bucket.
func BucketFor(percent int) CompletionBucket {
	switch {
	case percent >= 80:
		return BucketHigh
	case percent >= 50:
		return BucketMedium
	default:
		return BucketLow
	}
}

func (b CompletionBucket) String() string {
	switch b {
	case BucketHigh:
		return "high"
	case BucketMedium:
		return "medium"
	default:
		return "low"
	}
}
