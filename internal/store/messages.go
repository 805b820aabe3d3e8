package store

// Messages — тексты результатов операций, показываемые пользователю.
// Текст ошибки используется, когда удалённая сторона не вернула своего сообщения.
type Messages struct {
	FetchError         string
	FetchFilteredError string
	FetchOneError      string
	CreateError        string
	UpdateError        string
	DeleteError        string
	CreateSuccess      string
	UpdateSuccess      string
	DeleteSuccess      string
}

// Общие тексты для коллекций без собственных сообщений.
var genericMessages = Messages{
	FetchError:    "Error al obtener registros",
	FetchOneError: "Error al obtener registro",
	CreateError:   "Error al crear registro",
	UpdateError:   "Error al actualizar registro",
	DeleteError:   "Error al eliminar registro",
	CreateSuccess: "Registro creado correctamente",
	UpdateSuccess: "Registro actualizado correctamente",
	DeleteSuccess: "Registro eliminado correctamente",
}

// withDefaults заполняет пустые поля общими текстами.
func (m Messages) withDefaults() Messages {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.FetchError, genericMessages.FetchError)
	fill(&m.FetchFilteredError, m.FetchError)
	fill(&m.FetchOneError, genericMessages.FetchOneError)
	fill(&m.CreateError, genericMessages.CreateError)
	fill(&m.UpdateError, genericMessages.UpdateError)
	fill(&m.DeleteError, genericMessages.DeleteError)
	fill(&m.CreateSuccess, genericMessages.CreateSuccess)
	fill(&m.UpdateSuccess, genericMessages.UpdateSuccess)
	fill(&m.DeleteSuccess, genericMessages.DeleteSuccess)
	return m
}

// Наборы сообщений коллекций riskdesk.
var (
	CustomerMessages = Messages{
		FetchError:    "Error al obtener clientes",
		FetchOneError: "Error al obtener cliente",
		CreateError:   "Error al crear cliente",
		UpdateError:   "Error al actualizar cliente",
		DeleteError:   "Error al eliminar cliente",
		CreateSuccess: "Cliente creado correctamente",
		UpdateSuccess: "Cliente actualizado correctamente",
		DeleteSuccess: "Cliente eliminado correctamente",
	}

	CreditRequestMessages = Messages{
		FetchError:         "Error al obtener solicitudes de crédito",
		FetchFilteredError: "Error al obtener solicitudes de crédito del cliente",
		FetchOneError:      "Error al obtener solicitud de crédito",
		CreateError:        "Error al crear solicitud de crédito",
		UpdateError:        "Error al actualizar solicitud de crédito",
		DeleteError:        "Error al eliminar solicitud de crédito",
		CreateSuccess:      "Solicitud de crédito creada correctamente",
		UpdateSuccess:      "Solicitud de crédito actualizada correctamente",
		DeleteSuccess:      "Solicitud de crédito eliminada correctamente",
	}

	CustomerAssetMessages = Messages{
		FetchError:    "Error al obtener activos de clientes",
		FetchOneError: "Error al obtener activo de cliente",
		CreateError:   "Error al crear activo de cliente",
		UpdateError:   "Error al actualizar activo de cliente",
		DeleteError:   "Error al eliminar activo de cliente",
		CreateSuccess: "Activo de cliente creado correctamente",
		UpdateSuccess: "Activo de cliente actualizado correctamente",
		DeleteSuccess: "Activo de cliente eliminado correctamente",
	}

	UserMessages = Messages{
		FetchError:    "Error al obtener usuarios",
		FetchOneError: "Error al obtener usuario",
		CreateError:   "Error al crear usuario",
		UpdateError:   "Error al actualizar usuario",
		DeleteError:   "Error al eliminar usuario",
		CreateSuccess: "Usuario creado correctamente",
		UpdateSuccess: "Usuario actualizado correctamente",
		DeleteSuccess: "Usuario eliminado correctamente",
	}

	AssetMessages = Messages{
		FetchError:    "Error al obtener activos",
		FetchOneError: "Error al obtener activo",
	}

	CreditStatusMessages = Messages{
		FetchError:    "Error al obtener estados de crédito",
		FetchOneError: "Error al obtener estado de crédito",
	}

	DocumentTypeMessages = Messages{
		FetchError:    "Error al obtener tipos de documento",
		FetchOneError: "Error al obtener tipo de documento",
	}
)
