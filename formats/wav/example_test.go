// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/geosonify/formats/wav"
)

func Example() {
	dir, err := os.MkdirTemp("", "wav-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tone.wav")
	if err := wav.WriteFile(path, 8000, 1, make([]int16, 1000)); err != nil {
		fmt.Println(err)
		return
	}

	r, err := wav.Open(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer r.Close()

	total := 0
	buf := make([]int16, 256)
	for {
		n, err := r.ReadInt16(buf)
		total += n
		if err == io.EOF {
			break
		}
	}

	fmt.Println(r.SampleRate(), r.Channels(), total)
	// Output:
	// 8000 1 1000
}
