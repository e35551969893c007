package system

import (
	"bytes"
	"sync"
)

// Буферы больше maxPooledBuffer не возвращаем в пул
const maxPooledBuffer = 64 << 20

// BufferPool переиспользует буферы кодирования между запусками
type BufferPool struct {
	pool sync.Pool
}

var globalPool = &BufferPool{
	pool: sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	},
}

// GetBuffer берет пустой буфер из общего пула
func GetBuffer() *bytes.Buffer {
	return globalPool.Get()
}

// PutBuffer возвращает buf в общий пул
func PutBuffer(buf *bytes.Buffer) {
	globalPool.Put(buf)
}

func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	p.pool.Put(buf)
}
