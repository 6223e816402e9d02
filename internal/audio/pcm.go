package audio

import "encoding/binary"

// EncodePCM16LE converts float32 samples to 16-bit little-endian PCM.
// Each sample is clamped to [-1.0, 1.0], scaled by 32767 and truncated
// toward zero. Output is always exactly twice the input length.
// Stateless and safe to call from any goroutine.
func EncodePCM16LE(samples []float32) AudioData {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(int16(s*32767)))
	}
	return AudioData(out)
}
