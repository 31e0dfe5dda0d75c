// SPDX-License-Identifier: MPL-2.0

package policy

// DefaultScript is the placeholder policy written by `wasupdate init`.
const DefaultScript = `#!/bin/sh
# wasupdate policy script.
#
# Each function prints its answer on standard output.
# Host helpers:
#   fetch URL             HTTP GET, body on stdout
#   jq QUERY [JSON]       JMESPath query over JSON from stdin or the argument
#   run COMMAND [ARGS]    run a program, its stdout is captured
# WASUPDATE_EXE_DIR holds the directory of the running executable.

current_version() {
    echo "0.1.0"
}

latest_version() {
    # tag=$(fetch https://api.github.com/repos/OWNER/REPO/releases/latest | jq tag_name)
    # echo "${tag#v}"
    echo "0.1.0"
}

install_version() {
    local version="$1"
    echo "path/to/archive-${version}.tar.gz"
}
`
