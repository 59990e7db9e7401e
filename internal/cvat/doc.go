// Package cvat reads CVAT "for images 1.1" XML exports.
//
// An export describes one task: its metadata (task id, name and the job
// segments the frames were split into) followed by one <image> element per
// frame with the polygons drawn on it.
//
// # Data Model
//
//   - Project: one export file. Owns the job table and the images.
//   - Image: one annotated frame, keyed by the basename of its file name.
//   - Annotation: one polygon region, possibly assembled from several raw
//     polygon records that share a group id.
//
// # Group Merge
//
// Raw polygons are visited in file order. A polygon without a group id is a
// standalone Annotation. The first polygon of a group becomes a new
// Annotation; every later polygon of the same group is merged into it: the
// labels must match, the point rings are concatenated and the crowd flags
// are ORed. A label mismatch aborts loading with ErrLabelMismatch.
//
// # Review Links
//
// Every frame belongs to exactly one job segment. Links into the CVAT UI are
// built from a base URL (configurable, or derived from the segment URLs) as
//
//	<base>/jobs/<job>?frame=<frame>
//
// Project values are immutable once Open returns. The job and image tables
// are built during Open and reused by every accessor.
package cvat
