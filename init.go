package svs

func init() {
	RegisterCodec(CompressionNone, CodecFunc(decodeNone))
	RegisterCodec(CompressionLZW, CodecFunc(decodeLZW))
	RegisterCodec(CompressionJPEG, CodecFunc(decodeJPEG))
	RegisterCodec(CompressionDeflate, CodecFunc(decodeDeflate))
	RegisterCodec(CompressionDeflateOld, CodecFunc(decodeDeflate))
	RegisterCodec(CompressionZSTD, CodecFunc(decodeZSTD))
}
