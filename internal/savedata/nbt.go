package savedata

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// NBT tag types. Only the numeric tags are captured; everything else is
// skipped structurally. Full-format validation is out of scope: the pipeline
// consumes a handful of named numeric fields and nothing more.
const (
	tagEnd       = 0
	tagByte      = 1
	tagShort     = 2
	tagInt       = 3
	tagLong      = 4
	tagFloat     = 5
	tagDouble    = 6
	tagByteArray = 7
	tagString    = 8
	tagList      = 9
	tagCompound  = 10
	tagIntArray  = 11
	tagLongArray = 12
)

// extractFields walks an uncompressed NBT stream and returns the values of
// the wanted numeric fields (byte/short/int/long), matched by name at any
// depth. The first occurrence of a name wins.
func extractFields(r io.Reader, want map[string]bool) (map[string]int64, error) {
	br := bufio.NewReader(r)
	found := make(map[string]int64, len(want))

	typ, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read root tag: %w", err)
	}
	if typ != tagCompound {
		return nil, fmt.Errorf("root tag type %d, want compound", typ)
	}
	if _, err := readString(br); err != nil {
		return nil, fmt.Errorf("read root name: %w", err)
	}
	if err := walkCompound(br, want, found); err != nil {
		return nil, err
	}
	return found, nil
}

// walkCompound reads named tags until the end tag, capturing wanted fields.
func walkCompound(br *bufio.Reader, want map[string]bool, found map[string]int64) error {
	for {
		typ, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("read tag type: %w", err)
		}
		if typ == tagEnd {
			return nil
		}

		name, err := readString(br)
		if err != nil {
			return fmt.Errorf("read tag name: %w", err)
		}

		switch typ {
		case tagByte, tagShort, tagInt, tagLong:
			v, err := readInteger(br, typ)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			if want[name] {
				if _, ok := found[name]; !ok {
					found[name] = v
				}
			}
		case tagCompound:
			if err := walkCompound(br, want, found); err != nil {
				return err
			}
		default:
			if err := skipPayload(br, typ, want, found); err != nil {
				return fmt.Errorf("skip %s: %w", name, err)
			}
		}
	}
}

// skipPayload consumes the payload of a tag without capturing it, except
// that compounds nested in lists are still walked.
func skipPayload(br *bufio.Reader, typ byte, want map[string]bool, found map[string]int64) error {
	switch typ {
	case tagByte:
		return discard(br, 1)
	case tagShort:
		return discard(br, 2)
	case tagInt, tagFloat:
		return discard(br, 4)
	case tagLong, tagDouble:
		return discard(br, 8)
	case tagByteArray:
		n, err := readInt32(br)
		if err != nil {
			return err
		}
		return discard(br, int64(n))
	case tagString:
		_, err := readString(br)
		return err
	case tagList:
		elemType, err := br.ReadByte()
		if err != nil {
			return err
		}
		n, err := readInt32(br)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if elemType == tagCompound {
				if err := walkCompound(br, want, found); err != nil {
					return err
				}
				continue
			}
			if err := skipPayload(br, elemType, want, found); err != nil {
				return err
			}
		}
		return nil
	case tagCompound:
		return walkCompound(br, want, found)
	case tagIntArray:
		n, err := readInt32(br)
		if err != nil {
			return err
		}
		return discard(br, int64(n)*4)
	case tagLongArray:
		n, err := readInt32(br)
		if err != nil {
			return err
		}
		return discard(br, int64(n)*8)
	default:
		return fmt.Errorf("unknown tag type %d", typ)
	}
}

func readInteger(br *bufio.Reader, typ byte) (int64, error) {
	switch typ {
	case tagByte:
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		return int64(int8(b)), nil
	case tagShort:
		var buf [2]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(buf[:]))), nil
	case tagInt:
		n, err := readInt32(br)
		return int64(n), err
	case tagLong:
		var buf [8]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(buf[:])), nil
	default:
		return 0, fmt.Errorf("tag type %d is not an integer", typ)
	}
}

func readInt32(br *bufio.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func readString(br *bufio.Reader) (string, error) {
	var buf [2]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(buf[:])
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func discard(br *bufio.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, br, n)
	return err
}
