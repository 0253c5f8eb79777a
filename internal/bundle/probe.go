package bundle

import (
	"bytes"
	"io"
	"os"
)

type content int

const (
	contentText content = iota
	contentArchive
	contentBinary
)

// binaryRatio is the share of control bytes above which a prefix is binary.
const binaryRatio = 0.30

var archiveMagic = [][]byte{
	[]byte("PK\x03\x04"),             // zip
	[]byte("PK\x05\x06"),             // empty zip
	{0x1f, 0x8b},                     // gzip
	[]byte("BZh"),                    // bzip2
	{0xfd, '7', 'z', 'X', 'Z', 0x00}, // xz
	{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c},
}

// probe reads at most n bytes of the file at p and classifies them.
func probe(p string, n int) (content, error) {
	f, err := os.Open(p)
	if err != nil {
		return contentText, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return contentText, err
	}
	return classify(buf[:read]), nil
}

func classify(prefix []byte) content {
	for _, m := range archiveMagic {
		if bytes.HasPrefix(prefix, m) {
			return contentArchive
		}
	}
	if len(prefix) == 0 {
		return contentText
	}
	if bytes.IndexByte(prefix, 0) >= 0 {
		return contentBinary
	}

	control := 0
	for _, b := range prefix {
		if b < 0x20 && !textControl(b) || b == 0x7f {
			control++
		}
	}
	if float64(control)/float64(len(prefix)) > binaryRatio {
		return contentBinary
	}
	return contentText
}

// textControl reports control bytes that commonly appear in text logs.
func textControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\b', 0x1b:
		return true
	}
	return false
}
