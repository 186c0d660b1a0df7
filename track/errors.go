// SPDX-License-Identifier: EPL-2.0

package track

import "errors"

var ErrNotMono = errors.New("track is not mono")
