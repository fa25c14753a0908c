package gd

// ActivityFetcher pages through the remote activity list until exhaustion
// or a caller-supplied cap.
type ActivityFetcher struct {
	lister ActivityLister
	logger Logger

	// Progress, when set, is called with the accumulated count after each
	// full page.
	Progress func(fetched int)
}

// NewActivityFetcher creates a new activity fetcher
func NewActivityFetcher(lister ActivityLister, logger Logger) *ActivityFetcher {
	return &ActivityFetcher{
		lister: lister,
		logger: logger,
	}
}

// FetchAll requests pages of batchSize activities starting at offset 0
// until the service returns an empty page, or until maxCount activities
// have accumulated (maxCount <= 0 means unlimited; the result is truncated
// to exactly maxCount). Session-level failures propagate unchanged; there
// is no retry and no deduplication across pages.
func (f *ActivityFetcher) FetchAll(batchSize, maxCount int) ([]Activity, error) {
	var activities []Activity
	start := 0

	for {
		data, err := f.lister.ListActivities(start, batchSize)
		if err != nil {
			return nil, err
		}

		page, err := DecodeActivities(data)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		activities = append(activities, page...)
		start += batchSize
		f.logger.Debug("fetched activity page", "page_size", len(page), "total", len(activities))

		if maxCount > 0 && len(activities) >= maxCount {
			activities = activities[:maxCount]
			break
		}

		if f.Progress != nil {
			f.Progress(len(activities))
		}
	}

	return activities, nil
}
