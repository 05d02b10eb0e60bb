package docstore

// Identifiable restringe P a *T con SetID, para inyectar el id del documento.
type Identifiable[T any] interface {
	*T
	SetID(string)
}

// Decode convierte un documento en entidad con el id inyectado.
func Decode[T any, P Identifiable[T]](doc Document) (P, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	p := P(&v)
	p.SetID(doc.ID)
	return p, nil
}

// DecodeAll decodifica una lista de documentos conservando el orden.
func DecodeAll[T any, P Identifiable[T]](docs []Document) ([]P, error) {
	out := make([]P, 0, len(docs))
	for _, d := range docs {
		p, err := Decode[T, P](d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
