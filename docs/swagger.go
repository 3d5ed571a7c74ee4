// Package docs LPT Gateway API.
//
// Единый API отправлений общественного транспорта. Запрос по адресу
// маршрутизируется к провайдеру (HAFAS или TRIAS) по почтовому индексу,
// запросы по координатам обслуживает провайдер по умолчанию.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- application/xml
//
// swagger:meta
package docs
