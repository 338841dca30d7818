package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrCourseNotRanked = errors.New("course has no ranking record")
	ErrNoReviewsSource = errors.New("no reviews collaborator configured")
)
