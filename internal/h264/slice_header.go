package h264

// SliceHeader carries the fields needed to identify and rewrite a
// slice, plus a retained raw tail: the header's own bytes and the bit
// offset of the first bit after frame_num. Re-serialization only
// touches frame_num — every bit from DataOffset onward (field flags,
// reference-picture bookkeeping, weighted-prediction tables,
// deblocking parameters, and the slice data itself) is copied back
// verbatim, so unsupported syntax in that tail never needs to be
// parsed at all.
type SliceHeader struct {
	FirstMbInSlice    uint32
	SliceType         uint32
	PicParameterSetID uint32
	ColourPlaneID     *uint32
	FrameNum          uint32
	FrameNumBits      int
	FieldPicFlag      bool
	BottomFieldFlag   bool
	IdrPicID          *uint32
	RedundantPicCnt   *uint32

	Data       []byte
	DataOffset int
}

// ParseSliceHeader parses the fixed-position fields of a slice header
// out of a slice NAL's RBSP, given the SPS/PPS it references.
func ParseSliceHeader(rbsp []byte, sps *SPS, pps *PPS, nalType NALUnitType) (*SliceHeader, error) {
	r := NewBitReader(rbsp)
	h := &SliceHeader{
		Data: append([]byte(nil), rbsp...),
	}
	var err error

	if h.FirstMbInSlice, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if h.SliceType, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if h.PicParameterSetID, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if h.PicParameterSetID != pps.PicParameterSetID {
		return nil, InvalidData("slice pic_parameter_set_id does not match pps")
	}

	if sps.SeparateColourPlaneFlag {
		cpid, err := r.ReadBits(2)
		if err != nil {
			return nil, err
		}
		h.ColourPlaneID = &cpid
	}

	h.FrameNumBits = sps.FrameNumBits()
	frameNum, err := r.ReadBits(h.FrameNumBits)
	if err != nil {
		return nil, err
	}
	h.FrameNum = frameNum
	h.DataOffset = r.BitPos()

	if !sps.FrameMbsOnlyFlag {
		if h.FieldPicFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		if h.FieldPicFlag {
			if h.BottomFieldFlag, err = r.ReadFlag(); err != nil {
				return nil, err
			}
		}
	}

	if nalType.IsIDR() {
		idr, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		h.IdrPicID = &idr
	}

	if sps.PicOrderCntType.Type != 2 {
		return nil, Unimplemented("pic_order_cnt_type != 2 in slice header")
	}

	if pps.RedundantPicCntPresentFlag {
		rpc, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		h.RedundantPicCnt = &rpc
	}

	return h, nil
}

// ToBytes re-serializes the slice header, substituting newFrameNum for
// the original frame_num and copying every bit from DataOffset onward
// unchanged.
func (h *SliceHeader) ToBytes(newFrameNum uint32) []byte {
	w := NewBitWriter()
	w.WriteUE(h.FirstMbInSlice)
	w.WriteUE(h.SliceType)
	w.WriteUE(h.PicParameterSetID)
	if h.ColourPlaneID != nil {
		w.WriteBits(*h.ColourPlaneID, 2)
	}
	w.WriteBits(newFrameNum, h.FrameNumBits)

	tail := NewBitReader(h.Data)
	tail.pos = h.DataOffset
	total := len(h.Data) * 8
	for tail.pos < total {
		b, err := tail.ReadBit()
		if err != nil {
			break
		}
		w.WriteBit(b)
	}
	return w.Bytes()
}
