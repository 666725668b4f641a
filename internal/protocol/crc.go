package protocol

// CRC16Modbus computes CRC-16/MODBUS (reflected poly 0xA001, seed 0xFFFF).
// Appending the result low byte first makes the CRC of the whole message 0.
func CRC16Modbus(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
