// SPDX-License-Identifier: MPL-2.0

// Package platform provides the few operating-system facts wasupdate depends
// on: where the running executable lives and which file names the host
// filesystem can hold.
package platform
