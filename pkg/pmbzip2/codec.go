package pmbzip2

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/dsnet/compress/bzip2"
)

// 底层压缩原语被抽象为两个消息级接口：压缩端按块喂入明文、取回已就绪的
// 压缩数据，Flush 是终结操作；解压端对称。bzip2 没有“不关流的 flush”，
// 所以两端的实例都只服务一条消息，用完即弃。

// Compressor 是单条消息的流式压缩器。
type Compressor interface {
	// Compress 喂入一块明文，返回当前已就绪的压缩数据（可能为空，内部会缓冲）。
	Compress(p []byte) ([]byte, error)
	// Flush 刷出剩余的全部压缩数据并关闭压缩流。Flush 之后实例不可复用。
	Flush() ([]byte, error)
}

// Decompressor 是单条消息的流式解压器。
type Decompressor interface {
	// Decompress 喂入一块压缩数据，返回由此解出的全部明文（可能为空）。
	Decompress(p []byte) ([]byte, error)
	// Close 丢弃解压器并释放其内部资源。
	Close() error
}

// ErrDecompressorClosed 表示向已关闭的解压器继续喂入数据。
var ErrDecompressorClosed = errors.New("解压器已关闭")

const decompressChunkSize = 32 * 1024

// bzip2Compressor 把 bzip2.Writer 的 io.Writer 接口适配成按块压缩。
type bzip2Compressor struct {
	buf bytes.Buffer
	zw  *bzip2.Writer
}

func newBzip2Compressor(level int) (*bzip2Compressor, error) {
	c := &bzip2Compressor{}
	zw, err := bzip2.NewWriter(&c.buf, &bzip2.WriterConfig{Level: level})
	if err != nil {
		return nil, err
	}
	c.zw = zw
	return c, nil
}

func (c *bzip2Compressor) Compress(p []byte) ([]byte, error) {
	if _, err := c.zw.Write(p); err != nil {
		return nil, err
	}
	return c.take(), nil
}

func (c *bzip2Compressor) Flush() ([]byte, error) {
	if err := c.zw.Close(); err != nil {
		return nil, err
	}
	return c.take(), nil
}

// take 取走缓冲中已就绪的压缩数据。bzip2 按块产出，喂入阶段经常为空。
func (c *bzip2Compressor) take() []byte {
	if c.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	c.buf.Reset()
	return out
}

// bzip2Decompressor 把拉取式的 bzip2.Reader 桥接成按块推入的接口。
//
// 解码运行在独立的 goroutine 中，以本类型自身为数据源（Read 方法）。
// Decompress 写入一块压缩数据后等待两种状态之一：解码方消费完输入、
// 阻塞等待更多数据（此时它已吐出了当前能解出的全部明文——bzip2 按块解码，
// 只有当前块的输出全部交付后才会继续索要输入），或者解码方因读到流尾/
// 出错而退出。随后取走累计的明文返回。
type bzip2Decompressor struct {
	mu   sync.Mutex
	cond *sync.Cond

	in      bytes.Buffer // 尚未被解码方消费的压缩数据
	out     bytes.Buffer // 已解出、尚未被取走的明文
	waiting bool         // 解码方正阻塞等待更多输入
	closed  bool         // Close 已调用，输入到此为止
	done    bool         // 解码 goroutine 已退出
	err     error        // 解码错误，正常读到流尾时为 nil
}

func newBzip2Decompressor() *bzip2Decompressor {
	d := &bzip2Decompressor{}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Read 是解码 goroutine 的数据源：无输入时阻塞，Close 之后返回 io.EOF。
func (d *bzip2Decompressor) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.in.Len() == 0 && !d.closed {
		d.waiting = true
		d.cond.Broadcast()
		d.cond.Wait()
	}
	d.waiting = false
	if d.in.Len() == 0 {
		return 0, io.EOF
	}
	return d.in.Read(p)
}

func (d *bzip2Decompressor) run() {
	zr, err := bzip2.NewReader(d, nil)
	if err == nil {
		buf := make([]byte, decompressChunkSize)
		for {
			n, rerr := zr.Read(buf)
			if n > 0 {
				d.mu.Lock()
				d.out.Write(buf[:n])
				d.mu.Unlock()
			}
			if rerr != nil {
				if rerr != io.EOF {
					err = rerr
				}
				break
			}
		}
	}
	d.mu.Lock()
	d.done = true
	d.err = err
	d.cond.Broadcast()
	d.mu.Unlock()
}

func (d *bzip2Decompressor) Decompress(p []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDecompressorClosed
	}
	if !d.done {
		d.in.Write(p)
		d.cond.Broadcast()
		// 等待解码方处理完本次输入。
		for !d.done && !(d.waiting && d.in.Len() == 0) {
			d.cond.Wait()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	if d.out.Len() == 0 {
		return nil, nil
	}
	out := make([]byte, d.out.Len())
	copy(out, d.out.Bytes())
	d.out.Reset()
	return out, nil
}

func (d *bzip2Decompressor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	// 通知解码方输入结束并等它退出，避免 goroutine 泄漏。
	d.closed = true
	d.cond.Broadcast()
	for !d.done {
		d.cond.Wait()
	}
	return nil
}
