package pmbzip2

import "errors"

var (
	// ErrCompressNotStarted 表示在 StartCompressMessage 之前喂入了发送数据。
	ErrCompressNotStarted = errors.New("压缩流尚未开始")
	// ErrDecompressNotStarted 表示在 StartDecompressMessage 之前喂入了接收数据。
	ErrDecompressNotStarted = errors.New("解压流尚未开始")
)

// Processor 是协商完成后绑定在单条连接上的 permessage-bzip2 处理器。
// 它持有发送、接收两个方向各自独立的编解码状态，在连接的整个生命周期内
// 逐消息复用；连接关闭时直接丢弃即可，编解码状态不需要额外的收尾动作。
//
// 两个方向相互独立，可以并发使用（例如一个 goroutine 压缩出站消息，
// 另一个解压入站消息）；但同一方向上编解码状态按消息原地变更，
// 同一方向的调用必须串行，同方向不允许多条消息同时在途。
type Processor struct {
	isServer bool

	// 协商得到的两个方向的压缩级别，构造时已把 0（未请求）归一为默认级别，
	// 运行期状态中不存在“未设置”。
	s2cMaxCompressLevel int
	c2sMaxCompressLevel int

	// 消息级的编解码器。惰性创建，消息结束即销毁：
	// bzip2 的流式 flush 是终结操作，flush 过的压缩器绝不能复用。
	compressor   Compressor
	decompressor Decompressor
}

// NewProcessorFromAccept 由服务端在协商通过后基于 Accept 构造处理器。
func NewProcessorFromAccept(isServer bool, accept *Accept) *Processor {
	return newProcessor(isServer, accept.Offer.RequestMaxCompressLevel, accept.RequestMaxCompressLevel)
}

// NewProcessorFromResponse 由客户端基于解析出的 Response 构造处理器。
func NewProcessorFromResponse(isServer bool, resp *Response) *Processor {
	return newProcessor(isServer, resp.S2CMaxCompressLevel, resp.C2SMaxCompressLevel)
}

func newProcessor(isServer bool, s2cMaxCompressLevel, c2sMaxCompressLevel int) *Processor {
	if s2cMaxCompressLevel == 0 {
		s2cMaxCompressLevel = DefaultCompressLevel
	}
	if c2sMaxCompressLevel == 0 {
		c2sMaxCompressLevel = DefaultCompressLevel
	}
	return &Processor{
		isServer:            isServer,
		s2cMaxCompressLevel: s2cMaxCompressLevel,
		c2sMaxCompressLevel: c2sMaxCompressLevel,
	}
}

// S2CMaxCompressLevel 返回协商后 s2c 方向的压缩级别。
func (p *Processor) S2CMaxCompressLevel() int { return p.s2cMaxCompressLevel }

// C2SMaxCompressLevel 返回协商后 c2s 方向的压缩级别。
func (p *Processor) C2SMaxCompressLevel() int { return p.c2sMaxCompressLevel }

// sendLevel 返回本端出站方向使用的级别：服务端用 s2c，客户端用 c2s。
func (p *Processor) sendLevel() int {
	if p.isServer {
		return p.s2cMaxCompressLevel
	}
	return p.c2sMaxCompressLevel
}

// StartCompressMessage 开始压缩一条出站消息。
// 没有活跃压缩器时按本端角色对应的级别创建一个；
// 同一条消息内重复调用是幂等的。
func (p *Processor) StartCompressMessage() error {
	if p.compressor != nil {
		return nil
	}
	c, err := newBzip2Compressor(p.sendLevel())
	if err != nil {
		return &CodecError{Err: err}
	}
	p.compressor = c
	return nil
}

// CompressMessageData 喂入一块出站明文，返回当前已就绪的压缩数据（可能为空）。
// 一条消息内可多次调用以支持流式负载。
func (p *Processor) CompressMessageData(data []byte) ([]byte, error) {
	if p.compressor == nil {
		return nil, ErrCompressNotStarted
	}
	out, err := p.compressor.Compress(data)
	if err != nil {
		return nil, &CodecError{Err: err}
	}
	return out, nil
}

// EndCompressMessage 刷出本条消息剩余的全部压缩数据并销毁压缩器。
// 没有活跃压缩器时（例如未经 StartCompressMessage 的重复调用）
// 确定性地返回空输出，不会复用已经 flush 过的旧压缩器。
func (p *Processor) EndCompressMessage() ([]byte, error) {
	if p.compressor == nil {
		return nil, nil
	}
	out, err := p.compressor.Flush()
	p.compressor = nil
	if err != nil {
		return nil, &CodecError{Err: err}
	}
	return out, nil
}

// StartDecompressMessage 开始解压一条入站消息，同一条消息内重复调用是幂等的。
func (p *Processor) StartDecompressMessage() {
	if p.decompressor == nil {
		p.decompressor = newBzip2Decompressor()
	}
}

// DecompressMessageData 喂入一块入站压缩数据，返回由此解出的明文（可能为空）。
// 数据畸形时返回 CodecError：压缩流中途损坏不可恢复，调用方应关闭连接。
func (p *Processor) DecompressMessageData(data []byte) ([]byte, error) {
	if p.decompressor == nil {
		return nil, ErrDecompressNotStarted
	}
	out, err := p.decompressor.Decompress(data)
	if err != nil {
		return nil, &CodecError{Err: err}
	}
	return out, nil
}

// EndDecompressMessage 丢弃本条消息的解压器。
// 解压没有终结性的 flush，但解压器同样只服务一条消息：
// 及时丢弃既限制内存占用，也避免状态跨消息泄漏。
func (p *Processor) EndDecompressMessage() {
	if p.decompressor == nil {
		return
	}
	_ = p.decompressor.Close()
	p.decompressor = nil
}
