// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import "strings"

// worldStartAce grants Everyone (WD) the rights an unprivileged
// caller needs to drive the service: start (RP), stop (WP), pause
// (DT), query lock status (LO), query config (CR), and read control
// (RC). Configuration changes and deletion stay with administrators.
const worldStartAce = "(A;;RPWPDTLOCRRC;;;WD)"

// InjectWorldAce returns sddl with worldStartAce added to the DACL.
// The ACE lands before the SACL marker when one is present, and is
// not duplicated if already granted.
func InjectWorldAce(sddl string) string {
	if strings.Contains(sddl, worldStartAce) {
		return sddl
	}
	if i := strings.Index(sddl, "S:"); i >= 0 {
		return sddl[:i] + worldStartAce + sddl[i:]
	}
	return sddl + worldStartAce
}
