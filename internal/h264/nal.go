package h264

// NALUnitType is the closed enumeration of H.264 Annex-B NAL unit
// types this package can recognise. Values mirror Table 7-1 of the
// standard.
type NALUnitType uint8

const (
	NALUnspecified              NALUnitType = 0
	NALCodedSliceNonIDR         NALUnitType = 1
	NALCodedSliceDataPartitionA NALUnitType = 2
	NALCodedSliceDataPartitionB NALUnitType = 3
	NALCodedSliceDataPartitionC NALUnitType = 4
	NALCodedSliceIDR            NALUnitType = 5
	NALSEI                      NALUnitType = 6
	NALSPS                      NALUnitType = 7
	NALPPS                      NALUnitType = 8
	NALAUD                      NALUnitType = 9
	NALEndOfSequence            NALUnitType = 10
	NALEndOfStream              NALUnitType = 11
	NALFiller                   NALUnitType = 12
	NALSPSExtension             NALUnitType = 13
	NALPrefix                   NALUnitType = 14
	NALSubsetSPS                NALUnitType = 15
	NALDPS                      NALUnitType = 16
	NALCodedSliceAux            NALUnitType = 19
	NALCodedSliceSVCExtension   NALUnitType = 20
)

// IsPictureData reports whether a NAL of this type carries slice data
// (IDR or non-IDR), the only types that consume a pacing tick.
func (t NALUnitType) IsPictureData() bool {
	return t == NALCodedSliceNonIDR || t == NALCodedSliceIDR
}

// IsIDR reports whether this type is the IDR slice type.
func (t NALUnitType) IsIDR() bool {
	return t == NALCodedSliceIDR
}

// unsupportedNALTypes are structurally legal but not parsed by this
// package (SVC/MVC extension headers change the NAL header layout).
var unsupportedNALTypes = map[NALUnitType]bool{
	NALPrefix:                 true,
	NALCodedSliceSVCExtension: true,
	21:                        true, // coded slice extension for depth view components
}

// NalUnit is a decoded NAL: the one-byte header fields plus the RBSP
// payload with emulation-prevention bytes already removed.
type NalUnit struct {
	NalRefIdc   uint8
	NalUnitType NALUnitType
	RBSP        []byte
}

// DecodeNAL parses a raw NAL (header byte + EBSP payload, no start
// code) into a NalUnit, stripping emulation-prevention bytes from the
// payload.
func DecodeNAL(raw []byte) (NalUnit, error) {
	if len(raw) < 1 {
		return NalUnit{}, EndOfStream("nal unit shorter than header")
	}
	header := raw[0]
	if header&0x80 != 0 {
		return NalUnit{}, InvalidData("forbidden_zero_bit set")
	}
	refIdc := (header >> 5) & 0x03
	unitType := NALUnitType(header & 0x1f)
	if unsupportedNALTypes[unitType] {
		return NalUnit{}, Unimplemented("unsupported nal_unit_type")
	}
	return NalUnit{
		NalRefIdc:   refIdc,
		NalUnitType: unitType,
		RBSP:        DecodeRBSP(raw[1:]),
	}, nil
}

// EncodeNAL re-serializes a NalUnit into raw NAL bytes (header byte +
// EBSP payload, no start code), re-inserting emulation-prevention
// bytes.
func (u NalUnit) EncodeNAL() []byte {
	header := (u.NalRefIdc&0x03)<<5 | byte(u.NalUnitType)&0x1f
	out := make([]byte, 0, len(u.RBSP)+4)
	out = append(out, header)
	out = append(out, EncodeRBSP(u.RBSP)...)
	return out
}

// DecodeRBSP strips emulation-prevention (0x03) bytes from an EBSP
// payload: any 0x000003 window has its trailing 0x03 removed.
func DecodeRBSP(ebsp []byte) []byte {
	out := make([]byte, 0, len(ebsp))
	zeroRun := 0
	for i := 0; i < len(ebsp); i++ {
		b := ebsp[i]
		if zeroRun >= 2 && b == 0x03 {
			zeroRun = 0
			continue
		}
		out = append(out, b)
		if b == 0x00 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}

// EncodeRBSP inserts emulation-prevention (0x03) bytes into an RBSP
// payload: after two consecutive zero bytes, any byte <= 0x03 is
// preceded by an inserted 0x03.
func EncodeRBSP(rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+len(rbsp)/3+1)
	zeroRun := 0
	for _, b := range rbsp {
		if zeroRun >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeroRun = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}
