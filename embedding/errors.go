// SPDX-License-Identifier: EPL-2.0

package embedding

import "errors"

var (
	ErrScoreLength  = errors.New("scorer output length mismatch")
	ErrEmbedderDims = errors.New("embedder returned inconsistent dimensions")
)
