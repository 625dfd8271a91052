// Package worker компилирует workflow документы из очереди RabbitMQ.
//
// # Обзор
//
// Worker — stateless компонент: получает запрос compile.request из очереди
// compile.requests, компилирует документ, отрисовывает граф в запрошенном
// формате и публикует compile.result в flowgraph.compile (по reply_to
// запроса или в очередь compile.results).
//
//	w := worker.New(worker.Config{
//	    Options:   opts,
//	    Publisher: publisher,
//	    Conn:      mqConn,
//	    Logger:    logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Ошибки
//
// Пакет различает три исхода обработки сообщения:
//   - Ошибка документа или опций (engine.IsDocumentError) — результат FAILED, ack
//   - Нечитаемый payload — nack без requeue, сообщение уходит в dlq.compile
//   - Ошибка публикации результата — nack с requeue
//
// Повтор компиляции того же документа даёт тот же результат, поэтому
// ошибки документа не повторяются.
package worker
