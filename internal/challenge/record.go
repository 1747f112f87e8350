package challenge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordVersionV1 = 1

var errInvalidRecord = errors.New("challenge: invalid record encoding")

// Record is one pending challenge. CodeHash is the PHC-encoded hash of
// the emailed code; Payload is the flow-specific blob replayed to the
// caller on successful consumption.
type Record struct {
	CodeHash  string
	Payload   []byte
	ExpiresAt int64
}

func encodeRecord(record *Record) ([]byte, error) {
	if len(record.CodeHash) > 65535 {
		return nil, errors.New("challenge: code hash too long")
	}
	if len(record.Payload) > 65535 {
		return nil, errors.New("challenge: payload too long")
	}

	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.CodeHash))); err != nil {
		return nil, err
	}
	buf.WriteString(record.CodeHash)

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Payload))); err != nil {
		return nil, err
	}
	buf.Write(record.Payload)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errInvalidRecord
	}
	if version != recordVersionV1 {
		return nil, errInvalidRecord
	}

	record := &Record{}

	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, errInvalidRecord
	}

	var hashLen uint16
	if err := binary.Read(reader, binary.BigEndian, &hashLen); err != nil {
		return nil, errInvalidRecord
	}
	hash := make([]byte, hashLen)
	if _, err := io.ReadFull(reader, hash); err != nil {
		return nil, errInvalidRecord
	}
	record.CodeHash = string(hash)

	var payloadLen uint16
	if err := binary.Read(reader, binary.BigEndian, &payloadLen); err != nil {
		return nil, errInvalidRecord
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, errInvalidRecord
	}
	if payloadLen > 0 {
		record.Payload = payload
	}

	if reader.Len() != 0 {
		return nil, errInvalidRecord
	}

	return record, nil
}
