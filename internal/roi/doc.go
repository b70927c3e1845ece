// Package roi reads region-of-interest occupancy from the video-tracking
// CSV written alongside a session and turns it into offer decisions.
//
// The tracker writes one row per frame with a boolean column per zone:
// IsInDIAG, IsInGRID, IsInHORI and IsInRADI.
package roi
