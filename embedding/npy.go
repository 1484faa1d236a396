package embedding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NumPy .npy 格式：magic + 版本 + 头长度 + Python dict 字面量头 + 原始数据。
// 支持离线批处理产出的两种数组：
//   - 向量：2 维 float32/float64
//   - ID：1 维 int/uint、定长 unicode（U）或定长字节串（S）；object 数组（pickle）不支持

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

type npyArray struct {
	order    binary.ByteOrder
	kind     byte // f / i / u / U / S / O ...
	itemSize int  // 单个元素字节数
	fortran  bool
	shape    []int
	raw      []byte
}

func readNpy(r io.Reader) (*npyArray, error) {
	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read npy preamble: %w", err)
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return nil, fmt.Errorf("not an npy file")
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var hl uint16
		if err := binary.Read(r, binary.LittleEndian, &hl); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(hl)
	case 2, 3:
		var hl uint32
		if err := binary.Read(r, binary.LittleEndian, &hl); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(hl)
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	arr, err := parseNpyHeader(string(header))
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read npy data: %w", err)
	}
	need, ok := arr.byteLen()
	if !ok {
		return nil, fmt.Errorf("npy shape %v too large", arr.shape)
	}
	if len(raw) < need {
		return nil, fmt.Errorf("npy data truncated: need %d bytes, got %d", need, len(raw))
	}
	arr.raw = raw
	return arr, nil
}

func parseNpyHeader(header string) (*npyArray, error) {
	m := npyDescrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("npy header missing descr: %q", header)
	}
	descr := m[1]
	if len(descr) < 2 {
		return nil, fmt.Errorf("invalid npy descr %q", descr)
	}

	arr := &npyArray{order: binary.LittleEndian}
	switch descr[0] {
	case '<', '|', '=':
	case '>':
		arr.order = binary.BigEndian
	default:
		descr = "|" + descr
	}
	arr.kind = descr[1]
	if arr.kind == 'O' {
		return nil, fmt.Errorf("npy object arrays (pickled) are not supported")
	}
	size, err := strconv.Atoi(descr[2:])
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("invalid npy descr %q", descr)
	}
	if arr.kind == 'U' {
		size *= 4 // UTF-32 code units
	}
	arr.itemSize = size

	if fm := npyFortranRe.FindStringSubmatch(header); fm != nil {
		arr.fortran = fm[1] == "True"
	}

	sm := npyShapeRe.FindStringSubmatch(header)
	if sm == nil {
		return nil, fmt.Errorf("npy header missing shape: %q", header)
	}
	for _, part := range strings.Split(sm[1], ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "L"))
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid npy shape %q", sm[1])
		}
		arr.shape = append(arr.shape, n)
	}
	return arr, nil
}

func (a *npyArray) count() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// byteLen 返回数据区应有的字节数，元素数或字节数溢出 int 时返回 false。
func (a *npyArray) byteLen() (int, bool) {
	n := 1
	for _, d := range a.shape {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	if a.itemSize > 0 && n > math.MaxInt/a.itemSize {
		return 0, false
	}
	return n * a.itemSize, true
}

func (a *npyArray) elem(k int) []byte {
	return a.raw[k*a.itemSize : (k+1)*a.itemSize]
}

// matrix 将 2 维浮点数组转换为行优先 float32 矩阵。
func (a *npyArray) matrix() (rows, dim int, data []float32, err error) {
	if len(a.shape) != 2 {
		return 0, 0, nil, fmt.Errorf("embedding array must be 2-D, got shape %v", a.shape)
	}
	if a.kind != 'f' || (a.itemSize != 4 && a.itemSize != 8) {
		return 0, 0, nil, fmt.Errorf("embedding array must be float32 or float64")
	}
	rows, dim = a.shape[0], a.shape[1]
	if need, ok := a.byteLen(); !ok || len(a.raw) < need {
		return 0, 0, nil, fmt.Errorf("embedding array shape %v exceeds data", a.shape)
	}
	data = make([]float32, rows*dim)
	for k := range data {
		b := a.elem(k)
		var v float32
		if a.itemSize == 4 {
			v = math.Float32frombits(a.order.Uint32(b))
		} else {
			v = float32(math.Float64frombits(a.order.Uint64(b)))
		}
		if a.fortran {
			// 列优先：第 k 个元素位于 (k % rows, k / rows)
			data[(k%rows)*dim+k/rows] = v
		} else {
			data[k] = v
		}
	}
	return rows, dim, data, nil
}

// strings 将 1 维 ID 数组转换为字符串。
func (a *npyArray) strings() ([]string, error) {
	if len(a.shape) != 1 {
		return nil, fmt.Errorf("id array must be 1-D, got shape %v", a.shape)
	}
	n := a.shape[0]
	out := make([]string, n)
	for k := 0; k < n; k++ {
		b := a.elem(k)
		switch a.kind {
		case 'i':
			out[k] = strconv.FormatInt(a.signed(b), 10)
		case 'u':
			out[k] = strconv.FormatUint(a.unsigned(b), 10)
		case 'S':
			out[k] = string(bytes.TrimRight(b, "\x00"))
		case 'U':
			var sb strings.Builder
			for off := 0; off+4 <= len(b); off += 4 {
				r := rune(a.order.Uint32(b[off:]))
				if r == 0 {
					break
				}
				if !utf8.ValidRune(r) {
					r = utf8.RuneError
				}
				sb.WriteRune(r)
			}
			out[k] = sb.String()
		default:
			return nil, fmt.Errorf("unsupported id dtype kind %q", a.kind)
		}
	}
	return out, nil
}

func (a *npyArray) unsigned(b []byte) uint64 {
	switch a.itemSize {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(a.order.Uint16(b))
	case 4:
		return uint64(a.order.Uint32(b))
	default:
		return a.order.Uint64(b)
	}
}

func (a *npyArray) signed(b []byte) int64 {
	switch a.itemSize {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(a.order.Uint16(b)))
	case 4:
		return int64(int32(a.order.Uint32(b)))
	default:
		return int64(a.order.Uint64(b))
	}
}
