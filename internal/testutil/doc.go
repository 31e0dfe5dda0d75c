// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers cover file setup (MustMkdirAll, MustWriteFile), per-user
// environment isolation (SetHomeDir, ClearEnvPrefix) and in-memory archive
// fixtures (ZipBytes, TarBytes, TarGzBytes).
package testutil
