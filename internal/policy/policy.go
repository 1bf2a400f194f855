// Package policy решает, может ли пользователь выполнить операцию над ресурсом.
//
// Для каждой операции задан список правил, достаточно выполнения любого из них.
// Неаутентифицированный пользователь отклоняется до проверки правил.
// Модератор может читать и редактировать чужие ресурсы, но не удалять их.
package policy

import (
	"fmt"
	"slices"

	"github.com/magabrotheeeer/lms/internal/models"
)

// Operation класс операции над ресурсом.
type Operation string

// Операции над ресурсами.
const (
	OpList          Operation = "list"
	OpRetrieve      Operation = "retrieve"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpPartialUpdate Operation = "partial_update"
	OpDestroy       Operation = "destroy"
)

// Actor пользователь, от имени которого выполняется запрос.
type Actor struct {
	ID            int64
	Authenticated bool
	Groups        []string
}

// IsModerator сообщает, состоит ли пользователь в группе модераторов.
func (a Actor) IsModerator() bool {
	return slices.Contains(a.Groups, models.GroupModerators)
}

// Owned ресурс с владельцем.
type Owned interface {
	Owner() (int64, bool)
}

// Subject ресурс, который сам является пользователем.
type Subject interface {
	Subject() int64
}

// Collection описывает выборку для операции list. OwnerID nil означает все записи.
type Collection struct {
	OwnerID *int64
}

// Owner возвращает владельца выборки, если она ограничена одним пользователем.
func (c Collection) Owner() (int64, bool) {
	if c.OwnerID == nil {
		return 0, false
	}
	return *c.OwnerID, true
}

// Rule предикат доступа.
type Rule func(actor Actor, resource any) bool

// IsOwner выполняется, если пользователь владеет ресурсом или сам является ресурсом.
func IsOwner(actor Actor, resource any) bool {
	switch r := resource.(type) {
	case Subject:
		return r.Subject() == actor.ID
	case Owned:
		owner, ok := r.Owner()
		return ok && owner == actor.ID
	default:
		return false
	}
}

// IsModerator выполняется для участников группы модераторов независимо от владельца.
func IsModerator(actor Actor, _ any) bool {
	return actor.IsModerator()
}

// IsCreator выполняется всегда: создатель становится владельцем ресурса.
func IsCreator(Actor, any) bool {
	return true
}

var table = map[Operation][]Rule{
	OpList:          {IsModerator, IsOwner},
	OpRetrieve:      {IsModerator, IsOwner},
	OpCreate:        {IsCreator},
	OpUpdate:        {IsModerator, IsOwner},
	OpPartialUpdate: {IsModerator, IsOwner},
	OpDestroy:       {IsOwner},
}

// Allowed проверяет правила операции. Неизвестная операция запрещена.
func Allowed(actor Actor, op Operation, resource any) bool {
	if !actor.Authenticated {
		return false
	}
	for _, rule := range table[op] {
		if rule(actor, resource) {
			return true
		}
	}
	return false
}

// Check как Allowed, но возвращает models.ErrUnauthorized для анонимного
// пользователя и models.ErrPolicyDenied при отказе.
func Check(actor Actor, operation Operation, resource any) error {
	const op = "policy.Check"
	if !actor.Authenticated {
		return fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if !Allowed(actor, operation, resource) {
		return fmt.Errorf("%s: %s: %w", op, operation, models.ErrPolicyDenied)
	}
	return nil
}

// ListScope возвращает фильтр владельца для списков: nil для модератора,
// иначе идентификатор самого пользователя.
func ListScope(actor Actor) *int64 {
	if actor.IsModerator() {
		return nil
	}
	id := actor.ID
	return &id
}
