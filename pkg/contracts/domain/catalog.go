package domain

// InputNames holds display names for the known raw-material codes.
var InputNames = map[string]string{
	"I001": "Algodón Premium",
	"I002": "Poliester",
	"I003": "Elastano",
	"I004": "Hilo Costura",
	"I005": "Colorante Rojo",
	"I006": "Colorante Azul",
	"I007": "Botones Madera",
	"I008": "Cremalleras",
	"I009": "Etiquetas",
	"I010": "Bolsas Empaque",
	"I011": "Tinta Estampado",
	"I012": "Hilo Bordar",
	"I013": "Lentejuelas",
	"I014": "Mostacillas",
	"I015": "Material Básico",
}

// ProcessNames holds display names for the known process codes.
var ProcessNames = map[string]string{
	"PR001": "Corte Tela",
	"PR002": "Costura Básica",
	"PR003": "Bordado",
	"PR004": "Planchado",
	"PR005": "Empaquetado",
}

// InputName returns the display name of an input code, or the code itself.
func InputName(code string) string {
	if name, ok := InputNames[code]; ok {
		return name
	}
	return code
}

// ProcessName returns the display name of a process code, or the code itself.
func ProcessName(code string) string {
	if name, ok := ProcessNames[code]; ok {
		return name
	}
	return code
}
