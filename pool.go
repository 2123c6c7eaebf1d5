package iso8583

import "sync"

// Encode scratch space. Schema.encode copies the finished message out
// before the buffer goes back.
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 512)
		return &buf
	},
}

func getBuffer() []byte {
	buf := bufferPool.Get().(*[]byte)
	return (*buf)[:0]
}

func putBuffer(buf []byte) {
	if cap(buf) > 8192 {
		return
	}
	b := buf[:0]
	bufferPool.Put(&b)
}
