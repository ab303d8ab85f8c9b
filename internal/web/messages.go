// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/photo"
)

// User-facing messages.
const (
	MsgInvalidCredentials = "Email ou senha inválidos"
	MsgInternal           = "Erro interno. Tente novamente."
	MsgNotFound           = "Registro não encontrado"
	MsgPageNotFound       = "Página não encontrada"
	MsgInvalidResetLink   = "Link inválido ou expirado"
	MsgResetSent          = "Se o email estiver cadastrado, você receberá um link para redefinir sua senha."
	MsgSaved              = "Registro salvo com sucesso"
	MsgDeleted            = "Registro excluído com sucesso"
)

// accountLockedMessage tells a locked-out user how long to wait, rounded up to
// whole minutes. A zero wait means the duration is unknown.
func accountLockedMessage(remaining time.Duration) string {
	const prefix = "Conta temporariamente bloqueada por excesso de tentativas. "
	if remaining <= 0 {
		return prefix + "Tente novamente mais tarde."
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes == 1 {
		return prefix + "Tente novamente em 1 minuto."
	}
	return fmt.Sprintf(prefix+"Tente novamente em %d minutos.", minutes)
}

// fieldMessage maps a domain error a user can fix to the form field it
// concerns and a Portuguese message. ok is false for internal errors.
func fieldMessage(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return dto.FieldEmail, "Email já cadastrado", true
	case errors.Is(err, auth.ErrWrongPassword):
		return dto.FieldCurrentPassword, "Senha atual incorreta", true
	case errors.Is(err, auth.ErrSelfDelete):
		return "", "Você não pode excluir o próprio usuário", true
	case errors.Is(err, auth.ErrInvalidResetToken):
		return "", MsgInvalidResetLink, true
	case errors.Is(err, catalog.ErrDuplicateName):
		return dto.FieldName, "Já existe um registro com este nome", true
	case errors.Is(err, catalog.ErrCategoryInUse):
		return "", "A categoria possui produtos e não pode ser excluída", true
	case errors.Is(err, catalog.ErrUnknownCategory):
		return dto.FieldCategoryID, "Categoria não encontrada", true
	case errors.Is(err, catalog.ErrInvalidOrder):
		return dto.FieldNewOrder, "A nova ordem deve listar cada foto uma única vez", true
	case errors.Is(err, photo.ErrUnsupportedType):
		return "", "Envie uma imagem JPEG ou PNG", true
	case errors.Is(err, photo.ErrTooLarge):
		return "", "A imagem deve ter no máximo 5 MB", true
	}
	return "", "", false
}

// isNotFound reports whether err means the addressed record does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, auth.ErrNotFound) || errors.Is(err, catalog.ErrNotFound)
}
