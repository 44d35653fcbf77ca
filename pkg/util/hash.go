package util

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// HashVisitors creates an MD5 digest over the fields the dashboard reads, used to
// detect whether a freshly fetched list differs from the last aggregated one.
// Each field is length-prefixed so separators inside values cannot collide.
func HashVisitors(visitors []model.Visitor) string {
	h := md5.New()
	for _, v := range visitors {
		writeField(h, v.ID)
		writeField(h, v.Sexo)
		writeField(h, v.DataNascimento)
		writeField(h, v.DataVisita)
		writeField(h, v.GFResponsavel)
		writeField(h, v.Endereco.Cidade)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	var n [binary.MaxVarintLen64]byte
	_, _ = h.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))])
	_, _ = h.Write([]byte(s))
}
