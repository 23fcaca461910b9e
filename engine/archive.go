package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/souvik131/optionlab/grid"
	"github.com/souvik131/optionlab/option"
	"google.golang.org/protobuf/encoding/protowire"
)

// Archive files are a sequence of frames, each an 8-byte big-endian length
// followed by that many bytes of zstd-compressed surface record.
const frameHeaderSize = 8

// Surface record field numbers.
const (
	fieldMeasure protowire.Number = iota + 1
	fieldX
	fieldY
	fieldRows
	fieldCols
	fieldBase
	fieldXValues
	fieldYValues
	fieldValues
)

// Params record field numbers.
const (
	paramAssetPrice protowire.Number = iota + 1
	paramStrikePrice
	paramRate
	paramCostOfCarry
	paramVolatility
	paramExerciseTime
	paramType
)

// ErrCorruptArchive is returned when an archive file cannot be decoded.
var ErrCorruptArchive = errors.New("corrupt surface archive")

func compress(input []byte) ([]byte, error) {
	var b bytes.Buffer
	bestLevel := zstd.WithEncoderLevel(zstd.SpeedBestCompression)
	encoder, err := zstd.NewWriter(&b, bestLevel)
	if err != nil {
		return nil, err
	}

	_, err = encoder.Write(input)
	if err != nil {
		encoder.Close()
		return nil, err
	}

	err = encoder.Close()
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func decompress(input []byte) ([]byte, error) {
	b := bytes.NewReader(input)
	decoder, err := zstd.NewReader(b)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(decoder)
	if err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func frame(data []byte) ([]byte, error) {
	compressedData, err := compress(data)
	if err != nil {
		return nil, err
	}
	bytesToSave := make([]byte, frameHeaderSize, frameHeaderSize+len(compressedData))
	binary.BigEndian.PutUint64(bytesToSave, uint64(len(compressedData)))
	return append(bytesToSave, compressedData...), nil
}

func appendToFile(filename string, data []byte) error {
	bytesToSave, err := frame(data)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.Write(bytesToSave)
	if err != nil {
		return err
	}
	return file.Close()
}

// AppendArchive adds the surfaces to the archive at path, creating it if needed.
func AppendArchive(path string, surfaces ...*Surface) error {
	for _, s := range surfaces {
		if err := appendToFile(path, encodeSurface(s)); err != nil {
			return fmt.Errorf("archive %s surface: %w", s.Measure, err)
		}
	}
	return nil
}

// ReadArchive decodes every surface stored at path, in write order.
func ReadArchive(path string) ([]*Surface, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var surfaces []*Surface
	for len(b) > 0 {
		if len(b) < frameHeaderSize {
			return nil, fmt.Errorf("%w: truncated frame header", ErrCorruptArchive)
		}
		sizeOfPacket := binary.BigEndian.Uint64(b[0:frameHeaderSize])
		if sizeOfPacket > uint64(len(b)-frameHeaderSize) {
			return nil, fmt.Errorf("%w: frame of %d bytes exceeds file", ErrCorruptArchive, sizeOfPacket)
		}
		packet, err := decompress(b[frameHeaderSize : sizeOfPacket+frameHeaderSize])
		if err != nil {
			return nil, err
		}
		b = b[sizeOfPacket+frameHeaderSize:]

		s, err := decodeSurface(packet)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

// encodeSurface stores the first cell record, every cell's x and y coordinates and
// the values. The full params grid is rebuilt from those on decode.
func encodeSurface(s *Surface) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMeasure, protowire.BytesType)
	b = protowire.AppendString(b, s.Measure)
	b = protowire.AppendTag(b, fieldX, protowire.BytesType)
	b = protowire.AppendString(b, s.X.Name)
	b = protowire.AppendTag(b, fieldY, protowire.BytesType)
	b = protowire.AppendString(b, s.Y.Name)
	b = protowire.AppendTag(b, fieldRows, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Values.Rows()))
	b = protowire.AppendTag(b, fieldCols, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Values.Cols()))

	if s.Params.Len() > 0 {
		b = protowire.AppendTag(b, fieldBase, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeParams(s.Params.At(0, 0)))
	}

	points := s.Points()
	xs, ys := make([]float64, len(points)), make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	b = appendPackedDoubles(b, fieldXValues, xs)
	b = appendPackedDoubles(b, fieldYValues, ys)
	b = appendPackedDoubles(b, fieldValues, s.Values.Data())
	return b
}

func encodeParams(p option.Params) []byte {
	var b []byte
	for _, f := range []struct {
		num protowire.Number
		v   float64
	}{
		{paramAssetPrice, p.AssetPrice},
		{paramStrikePrice, p.StrikePrice},
		{paramRate, p.Rate},
		{paramCostOfCarry, p.CostOfCarry},
		{paramVolatility, p.Volatility},
		{paramExerciseTime, p.ExerciseTime},
	} {
		b = protowire.AppendTag(b, f.num, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(f.v))
	}
	b = protowire.AppendTag(b, paramType, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.Type)))
	return b
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	packed := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func decodeSurface(b []byte) (*Surface, error) {
	var (
		measure, xName, yName string
		rows, cols            int
		base                  option.Params
		xs, ys, values        []float64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			b = b[n:]
			var err error
			switch num {
			case fieldMeasure:
				measure = string(v)
			case fieldX:
				xName = string(v)
			case fieldY:
				yName = string(v)
			case fieldBase:
				base, err = decodeParams(v)
			case fieldXValues:
				xs, err = decodePackedDoubles(v)
			case fieldYValues:
				ys, err = decodePackedDoubles(v)
			case fieldValues:
				values, err = decodePackedDoubles(v)
			}
			if err != nil {
				return nil, err
			}
		case typ == protowire.VarintType && (num == fieldRows || num == fieldCols):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldRows {
				rows = int(v)
			} else {
				cols = int(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	xField, err := option.FieldByName(xName)
	if err != nil {
		return nil, fmt.Errorf("%w: x axis: %v", ErrCorruptArchive, err)
	}
	yField, err := option.FieldByName(yName)
	if err != nil {
		return nil, fmt.Errorf("%w: y axis: %v", ErrCorruptArchive, err)
	}
	if len(xs) != rows*cols || len(ys) != rows*cols {
		return nil, fmt.Errorf("%w: %d x %d surface with %d/%d coordinates", ErrCorruptArchive, rows, cols, len(xs), len(ys))
	}
	valueGrid, err := grid.FromSlice(rows, cols, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	params := grid.New[option.Params](rows, cols)
	for k := range xs {
		p := xField.With(base, xs[k])
		yField.Set(&p, ys[k])
		params.Set(k/cols, k%cols, p)
	}
	return &Surface{
		Measure: measure,
		X:       xField,
		Y:       yField,
		Params:  params,
		Values:  valueGrid,
	}, nil
}

func decodeParams(b []byte) (option.Params, error) {
	var p option.Params
	dst := map[protowire.Number]*float64{
		paramAssetPrice:   &p.AssetPrice,
		paramStrikePrice:  &p.StrikePrice,
		paramRate:         &p.Rate,
		paramCostOfCarry:  &p.CostOfCarry,
		paramVolatility:   &p.Volatility,
		paramExerciseTime: &p.ExerciseTime,
	}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, fmt.Errorf("%w: params: %v", ErrCorruptArchive, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case typ == protowire.Fixed64Type && dst[num] != nil:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return p, fmt.Errorf("%w: params: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			*dst[num] = math.Float64frombits(v)
			b = b[n:]
		case typ == protowire.VarintType && num == paramType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return p, fmt.Errorf("%w: params: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			p.Type = option.OptionType(protowire.DecodeZigZag(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return p, fmt.Errorf("%w: params: %v", ErrCorruptArchive, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return p, nil
}

func decodePackedDoubles(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: packed doubles of %d bytes", ErrCorruptArchive, len(b))
	}
	out := make([]float64, 0, len(b)/8)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, protowire.ParseError(n))
		}
		out = append(out, math.Float64frombits(v))
		b = b[n:]
	}
	return out, nil
}
