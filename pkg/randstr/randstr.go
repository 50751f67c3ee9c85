package randstr

import "math/rand"

type generator struct {
	letterBytes []byte
}

func New(letterBytes []byte) generator {
	return generator{letterBytes: letterBytes}
}

func (g generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = g.letterBytes[rand.Intn(len(g.letterBytes))]
	}

	return string(b)
}
