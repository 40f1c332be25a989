package template

import "testing"

func FuzzMessageTemplateDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x05, 0x00, 0x08, 0x00, 0x01, 0x00, 0x02})
	f.Add([]byte{0x00, 0x05, 0x00, 0x08, 0xca, 0xfe, 0xba, 0xbe})
	f.Add([]byte{0x01})
	f.Add([]byte{})

	p := NewProtocol("fuzzDemo")
	_ = p.Add(NewUInt(Lit(2), "msgId", 5))
	_ = p.Add(NewUInt(Lit(2), "length", nil))
	pdu, _ := NewPDU("length-4")
	_ = p.Add(pdu)
	tpl := NewMessageTemplate("fuzzDemo", p,
		NewUInt(Lit(2), "field_1", 1),
		NewUInt(Lit(2), "field_2", 2),
	)

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Decode panicked on %x: %v", data, r)
			}
		}()
		_, _ = tpl.Decode(data)
	})
}
