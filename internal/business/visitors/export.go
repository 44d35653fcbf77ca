package visitors

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

var exportHeader = []string{
	"nome", "sexo", "data_nascimento", "data_visita", "gf_responsavel", "telefone",
	"cep", "rua", "numero", "complemento", "bairro", "cidade", "estado",
	"status", "observacoes", "created_at",
}

// ExportCSV streams every visitor as CSV rows into w.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	err := s.visitors.StreamAll(ctx, func(v model.Visitor) error {
		created := ""
		if !v.CreatedAt.IsZero() {
			created = v.CreatedAt.Format("2006-01-02 15:04")
		}
		return writer.Write([]string{
			v.Nome,
			v.Sexo,
			v.DataNascimento,
			v.DataVisita,
			v.GFResponsavel,
			v.Telefone,
			v.Endereco.CEP,
			v.Endereco.Rua,
			v.Endereco.Numero,
			v.Endereco.Complemento,
			v.Endereco.Bairro,
			v.Endereco.Cidade,
			v.Endereco.Estado,
			v.Status,
			v.Observacoes,
			created,
		})
	})
	if err != nil {
		return fmt.Errorf("export visitors: %w", err)
	}
	writer.Flush()
	return writer.Error()
}
