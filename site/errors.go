// SPDX-License-Identifier: EPL-2.0

package site

import "errors"

var (
	ErrEmptyID         = errors.New("site id is empty")
	ErrDuplicateID     = errors.New("duplicate site id")
	ErrUnknownCategory = errors.New("unknown site category")
	ErrBadRegion       = errors.New("region range is empty or negative")
)
