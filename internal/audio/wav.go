package audio

import "encoding/binary"

const wavHeaderSize = 44

// EncodeWAV wraps the buffer in a canonical RIFF/WAVE container (PCM16).
func EncodeWAV(b *Buffer) []byte {
	pcm := EncodePCM16(b)
	channels := uint16(len(b.Data))
	rate := uint32(b.Format.SampleRate)
	blockAlign := channels * 2

	out := make([]byte, wavHeaderSize+len(pcm))
	le := binary.LittleEndian

	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")

	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 1) // linear PCM
	le.PutUint16(out[22:], channels)
	le.PutUint32(out[24:], rate)
	le.PutUint32(out[28:], rate*uint32(blockAlign))
	le.PutUint16(out[32:], blockAlign)
	le.PutUint16(out[34:], 16)

	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)

	return out
}
