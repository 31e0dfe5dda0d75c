// SPDX-License-Identifier: MPL-2.0

// Package selfupdate drives an update: it asks a policy.VersionPolicy for the
// current and latest versions, and when they differ, for the location of the
// latest artifact, which it hands to an installer.
//
// The decision is a plain equality test on the two versions. Ordering is
// only used to phrase the status message.
package selfupdate
