package vision

// LandmarkDetector is the interface for the external landmark model.
// Implementations run a face-mesh network on a JPEG frame and return
// the detected landmark set, or nil when no face is in frame (the
// common case, not an error). No temporal smoothness between frames
// is guaranteed.
type LandmarkDetector interface {
	// DetectLandmarks finds a face in the image and returns its
	// landmark set. A nil set with a nil error means no face.
	DetectLandmarks(jpeg []byte) (LandmarkSet, error)

	// Close releases model resources.
	Close() error
}
